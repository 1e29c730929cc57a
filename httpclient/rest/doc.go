// Package rest decodes JSON responses of a Jira REST API on top of the
// authenticated httpclient.Client.
//
//	c := rest.New(httpClient)
//	me, err := rest.Get[User](ctx, c, "/rest/api/2/myself")
//	if rest.IsUnauthorized(err) { ... }
//
// Non-2xx responses become *StatusError carrying Jira's errorMessages and
// field errors.
package rest
