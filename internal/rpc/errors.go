package rpc

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/rpc"
)

var tooManyResults = regexp.MustCompile(`(?i)(query returned more than \d+ results|more than \d+ logs|response size exceeded)`)

// IsTooManyResultsError checks if the error is a node refusing a log query for its size.
// The node's detail, if any, is returned as the second value.
func IsTooManyResultsError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		errData := fmt.Sprintf("%v", dataErr.ErrorData())
		if tooManyResults.MatchString(errData) {
			return true, errData
		}
	}

	return tooManyResults.MatchString(err.Error()), ""
}
