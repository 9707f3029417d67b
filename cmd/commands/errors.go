package commands

import "errors"

var errUsage = errors.New("usage")
