//go:build js

package storage

import "errors"

func openBadgerBackend(Config) (Backend, error) {
	return nil, errors.New("badger backend is not available in the browser")
}
