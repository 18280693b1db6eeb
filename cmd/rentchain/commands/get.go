package commands

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/client"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get [path]",
		Short:   "GET a resource from a server and print it",
		Example: "  rentchain get /properties/1\n  rentchain get /events?after=10",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(serverURL)
			if err != nil {
				return err
			}
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			var body json.RawMessage
			err = c.HttpRequest(cmd.Context(), http.MethodGet, path, nil, &body)
			if err != nil {
				return err
			}
			rentchain.JsonPrint(path, body)
			return nil
		},
	}
}
