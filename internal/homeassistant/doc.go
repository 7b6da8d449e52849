// Package homeassistant provides an HTTP client for the Home Assistant REST API.
//
// # Overview
//
// The client covers the three calls Otter needs and nothing more:
//
//   - GET /api/config: server location, version, run state, time zone
//   - GET /api/states: every entity with its state and attributes
//   - POST /api/services/{domain}/toggle: toggle one entity
//
// Every request carries "Authorization: Bearer <token>". The token comes from
// the user's settings and is used verbatim.
//
// # Usage
//
//	client, err := homeassistant.NewClient("http://homeassistant.local:8123", token)
//	if err != nil {
//		return err
//	}
//	states, err := client.FetchStates(ctx)
//
// # Errors
//
// Failed calls return *Error with a Kind:
//
//   - KindTransport: no response (connection refused, DNS, cancelled context)
//   - KindStatus: the server answered with a non-2xx status
//   - KindDecode: the body did not decode into the expected shape
//
// Callers that only need a message can use err.Error(); the sync engine does
// exactly that. NewClient returns ErrNotConfigured when the URL or token is
// empty.
//
// # Timeouts
//
// The client sets no timeout of its own. Deadlines come from the caller's
// context.
package homeassistant
