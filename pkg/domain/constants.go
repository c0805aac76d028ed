package domain

// CallAPI is the envelope field that marks an action as a call to translate.
const CallAPI = "Call API"

// Field constants shared by actions and notifications.
const (
	KeyType    = "type"
	KeyPayload = "payload"
	KeyError   = "error"
	KeyBody    = "body"
	KeyHeaders = "headers"
	KeyParams  = "params"
)

// TokenSeparator joins the VERB, ENDPOINT and STEP segments of an action type.
const TokenSeparator = "_"

// DefaultContentType is sent with every call unless the caller overrides it.
const DefaultContentType = "application/json"
