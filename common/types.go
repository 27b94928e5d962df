package common

// Method identifies a scheduler operation on the wire. It doubles as the
// update type tag in responses and pushed updates.
type Method string

const (
	MethodSubmit  Method = "submit"
	MethodRemove  Method = "remove"
	MethodHold    Method = "hold"
	MethodRelease Method = "release"
	MethodUsage   Method = "usage"
	MethodList    Method = "list"
	MethodWatch   Method = "watch"
	MethodStop    Method = "stop"
	MethodVersion Method = "version"

	// UpdateStateChange tags pushed admission diffs on watch connections.
	UpdateStateChange Method = "state_change"
)

type SubmitParams struct {
	Priority  int32 `json:"priority,omitempty"`
	Resumable bool  `json:"resumable,omitempty"`
}

type SubmitResponse struct {
	EntryId string `json:"entry_id"`
	State   string `json:"state"`
}

type EntryIdParams struct {
	EntryId string `json:"entry_id"`
}

type HoldParams struct {
	EntryId string `json:"entry_id"`
	Key     string `json:"key"`
}

type UsageParams struct {
	EntryId string `json:"entry_id"`
	Bytes   uint64 `json:"bytes"`
}

type EntryInfo struct {
	EntryId   string   `json:"entry_id"`
	Owner     string   `json:"owner"`
	Priority  int32    `json:"priority"`
	Resumable bool     `json:"resumable"`
	Holds     []string `json:"holds,omitempty"`
	State     string   `json:"state"`
}

type ListResponse struct {
	Entries []EntryInfo `json:"entries"`
}

// StateChange is one element of an admission diff: the entry moved to
// the given state.
type StateChange struct {
	EntryId string `json:"entry_id"`
	State   string `json:"state"`
}

type StateChangeUpdate struct {
	Changes []StateChange `json:"changes"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}

type EmptyResponse struct{}
