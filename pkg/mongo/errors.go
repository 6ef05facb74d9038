package mongo

import "errors"

var (
	ErrEmptyConnectionURL     = errors.New("mongo: connection URL is empty")
	ErrFailedToConnectToMongo = errors.New("mongo: cannot connect")
	ErrHealthcheckFailed      = errors.New("mongo: ping failed")
	ErrNilClient              = errors.New("mongo: nil client")
)
