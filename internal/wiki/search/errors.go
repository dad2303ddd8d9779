package search

import "errors"

var (
	errInvalidJSON    = errors.New("不是合法 JSON")
	errMissingResults = errors.New("缺少 query.search")
)
