// Package results carries the outcome of a service operation.
//
// Infrastructure problems travel as a plain error next to the result; domain
// failures (a command used in the wrong chat, a player that is not ranked)
// travel inside the result so handlers can turn them into user-facing replies.
package results

// OperationResult holds either a success value or a domain failure.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult builds a successful result.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult builds a failed result.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

// IsSuccess reports whether the result holds a success value.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result holds a domain failure.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
