package constants

type contextKey string

const (
	TxKey          contextKey = "tx"
	LoggerKey      contextKey = "logger"
	ParamsKey      contextKey = "params"
	IdentityKey    contextKey = "identity"
	SessionKey     contextKey = "session"
	AfterCommitKey contextKey = "afterCommit"
)
