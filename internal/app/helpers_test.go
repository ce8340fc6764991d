package service_test

import "github.com/okian/jobdb/internal/domain/dedupe"

func dedupeResponse(status int, body string) dedupe.Response {
	return dedupe.Response{Status: status, Body: []byte(body)}
}
