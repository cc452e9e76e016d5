package commons

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrStateConsumed = errors.New("Input state already consumed")
