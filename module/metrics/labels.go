package metrics

const (
	EngineLabel   = "engine"
	LabelMessage  = "message"
	LabelProtocol = "protocol"
	LabelResult   = "result"
)

const (
	EngineMPC = "mpc"
)

const (
	MessageRoundMessage    = "round_message"
	MessageMaliciousReport = "malicious_report"
	MessageOutputDigest    = "output_digest"
	MessageEndOfPublish    = "end_of_publish"
	MessageSessionRequest  = "session_request"
	MessageUnknown         = "unknown"
)

const (
	LabelResource = "resource"
)

const (
	ResourceMPCOutput = "mpc_output"
)

const (
	namespaceMPC     = "mpc"
	namespaceNetwork = "network"
	namespaceStorage = "storage"
)

const (
	subsystemEngine   = "engine"
	subsystemSessions = "sessions"
	subsystemSecurity = "security"
	subsystemOutputs  = "outputs"
	subsystemBroker   = "broker"
	subsystemCache    = "cache"
)
