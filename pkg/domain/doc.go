/*
Package domain contains the core models of the asyncfetch middleware.

It defines the dispatched Action, the Call Envelope that tags an action for translation
into an HTTP call, the VERB_ENDPOINT_STEP token grammar and the configuration tables that
route a token to a method and a base URL. This package is kept pure and free of I/O.

# Key Entities

  - Action: a generic dispatched action, keyed by its "type" field.
  - Envelope: the decoded Call Envelope (inner action, body, headers, params).
  - Token: the structured form of a VERB_ENDPOINT_STEP action type.
  - EndpointTable / VerbTable: immutable routing tables built once at setup.
  - Hooks: lifecycle callbacks fired for every translated call.
*/
package domain
