// Command restauth sends authenticated requests to a Jira REST API.
//
//	restauth --config config.yml login
//	restauth --config config.yml request GET /rest/api/2/myself
//	restauth request POST /rest/api/2/issue --data @issue.json -H "X-Atlassian-Token: no-check"
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "restauth:", err)
		os.Exit(1)
	}
}
