// Package httpclient is the authenticated request layer of a Jira-style
// REST client.
//
// A Client sends every request to the configured site and applies one
// identity per configuration: HTTP Basic credentials, or a cookie session
// obtained with EstablishSession. Signed request tokens (JWT in the query
// string) can be enabled on top of either. Proxying, TLS verification,
// client certificates and the read timeout are applied to every request.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    Site:     "https://jira.example.com",
//	    Username: "admin",
//	    Password: "secret",
//	})
//
//	resp, err := client.Execute(ctx, httpclient.Request{
//	    Method: httpclient.MethodGet,
//	    URL:    "/rest/api/2/myself",
//	})
//
// # Cookie Sessions
//
//	client, err := httpclient.New(httpclient.Config{
//	    Site:       "https://jira.example.com",
//	    UseCookies: true,
//	    Username:   "admin",
//	    Password:   "secret",
//	})
//	_, err = client.EstablishSession(ctx) // credentials are dropped here
//
// A non-200 response is not an error: inspect the Response and
// IsAuthenticated. Errors are reserved for configuration problems,
// malformed requests and transport failures.
//
// A Client may be shared between goroutines; the cookie jar, the identity
// and the authenticated flag are guarded by a single mutex.
package httpclient
