package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/jwt"
)

func tokenCmd() *cobra.Command {
	var (
		key      string
		audience string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a wallet-signed bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv("RENTCHAIN_PRIVATE_KEY")
			}
			if key == "" {
				return fmt.Errorf("--key or RENTCHAIN_PRIVATE_KEY is required")
			}
			now := time.Now()
			token, err := jwt.Create(jwt.Claims{
				Subject:        rentchain.JWTSubject,
				Audience:       audience,
				IssuedAt:       strconv.FormatInt(now.Unix(), 10),
				ExpirationTime: strconv.FormatInt(now.Add(ttl).Unix(), 10),
			}, key)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "wallet private key (hex)")
	cmd.Flags().StringVar(&audience, "audience", "localhost", "server fqdn")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
