package errors

// retryableCategories are failure kinds a caller may retry unchanged.
var retryableCategories = map[int]bool{
	CategoryConflict:  true,
	CategoryRateLimit: true,
	CategoryNetwork:   true,
	CategoryTimeout:   true,
}

// IsRetryable reports whether err is worth retrying by the caller.
//
// Wrapper errors such as ErrAnswerGenerationFailed carry no retry semantics of
// their own; the decision is taken from the first Errno in the chain whose
// category is classified (retryable or terminal).
func IsRetryable(err error) bool {
	for _, e := range chain(err) {
		if e.terminal {
			return false
		}
		cat := GetCategory(e.Code)
		if retryableCategories[cat] {
			return true
		}
		if cat == CategoryAuth || cat == CategoryRequest || cat == CategoryResource {
			return false
		}
	}
	return false
}
