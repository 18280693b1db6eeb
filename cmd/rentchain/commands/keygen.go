package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/totegamma/rentchain"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a wallet key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, address, err := rentchain.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Println("privatekey:", key)
			fmt.Println("address:   ", address)
			return nil
		},
	}
}
