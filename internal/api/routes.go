package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"

	VerifyASPERoute = "/v1/verify/aspe"
	VerifyKeysRoute = "/v1/verify/keys"

	ProvidersRoute = "/v1/providers"

	TaskParent       = "/v1/tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)

// CacheHeader tells whether a verified profile was served from cache ("hit") or not ("miss").
const CacheHeader = "X-Doipv-Cache"
