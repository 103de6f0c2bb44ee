package models

type CommandType string

const (
	CommandStart       CommandType = "/start"
	CommandHelp        CommandType = "/help"
	CommandMenu        CommandType = "/menu"
	CommandTomorrow    CommandType = "/tomorrow"
	CommandDiningHalls CommandType = "/dininghalls"
	CommandSubscribe   CommandType = "/subscribe"
	CommandUnsubscribe CommandType = "/unsubscribe"
	CommandUnknown     CommandType = "unknown"
)

type Command struct {
	Type     CommandType
	ChatID   int64
	UserID   int64
	Text     string
	Username string
}
