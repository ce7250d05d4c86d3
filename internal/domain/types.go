package domain

import "time"

// Kind identifies which action an utterance maps to.
type Kind string

const (
	KindGreeting      Kind = "greeting"
	KindTimeQuery     Kind = "time_query"
	KindDateQuery     Kind = "date_query"
	KindKnowledge     Kind = "knowledge_query"
	KindWebSearch     Kind = "web_search"
	KindOpenApp       Kind = "open_app"
	KindCloseApp      Kind = "close_app"
	KindSetReminder   Kind = "set_reminder"
	KindListReminders Kind = "list_reminders"
	KindRememberNote  Kind = "remember_note"
	KindRecallMemory  Kind = "recall_memory"
	KindClearMemory   Kind = "clear_memory"
	KindCalculate     Kind = "calculate"
	KindJoke          Kind = "joke"
	KindSystemControl Kind = "system_control"
	KindHelp          Kind = "help"
	KindExit          Kind = "exit"
	KindUnknown       Kind = "unknown"
)

// SystemAction is the OS-level action carried by a SystemControl intent.
type SystemAction string

const (
	ActionLock       SystemAction = "lock"
	ActionVolumeUp   SystemAction = "volume_up"
	ActionVolumeDown SystemAction = "volume_down"
	ActionMute       SystemAction = "mute"
	ActionScreenshot SystemAction = "screenshot"
	ActionShutdown   SystemAction = "shutdown"
	ActionRestart    SystemAction = "restart"
)

// Intent is the structured classification of one utterance. Kind selects the
// variant; only the fields that variant carries are populated.
type Intent struct {
	Kind       Kind         `json:"kind"`
	Topic      string       `json:"topic,omitempty"`      // knowledge_query
	Query      string       `json:"query,omitempty"`      // web_search
	App        string       `json:"app,omitempty"`        // open_app / close_app
	Message    string       `json:"message,omitempty"`    // set_reminder / remember_note
	DueAt      time.Time    `json:"due_at,omitempty"`     // set_reminder
	Expression string       `json:"expression,omitempty"` // calculate
	Action     SystemAction `json:"action,omitempty"`     // system_control
	Raw        string       `json:"raw"`                  // original utterance
}

// Note is a free-form fact the user asked the assistant to remember.
// Immutable once stored; recalled in insertion order.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder is a persisted message with a due time. Fired flips false→true
// exactly once when the scheduler delivers it.
type Reminder struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	DueAt     time.Time `json:"due_at"`
	Fired     bool      `json:"fired"`
	CreatedAt time.Time `json:"created_at"`
}
