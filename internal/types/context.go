package types

import "context"

type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxAccountID ContextKey = "ctx_account_id"
)

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxRequestID).(string); ok {
		return v
	}
	return ""
}

func GetAccountID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxAccountID).(string); ok {
		return v
	}
	return ""
}
