// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"
	"github.com/luxfi/quorum"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quorumcli",
	Short: "Tools for validator keys and tagged signatures",
	Long: `quorumcli generates validator key pairs and creates and verifies
scheme-tagged signatures for the quorum certificate engine.`,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)

	keygenCmd.Flags().String("key", "", "optional hex secret key to re-derive instead of generating")

	signCmd.Flags().String("key", "", "hex secret key")
	signCmd.Flags().String("payload", "", "payload to sign")
	signCmd.Flags().Uint64("epoch", 0, "epoch the payload belongs to")

	verifyCmd.Flags().String("signature", "", "hex tagged signature")
	verifyCmd.Flags().String("payload", "", "payload the signature covers")
	verifyCmd.Flags().Uint64("epoch", 0, "epoch the payload belongs to")
	verifyCmd.Flags().String("address", "", "hex address of the expected signer")
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a validator key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyHex, _ := cmd.Flags().GetString("key")

		var keyBytes []byte
		if keyHex == "" {
			sk, err := bls.NewSecretKey()
			if err != nil {
				return err
			}
			keyBytes = bls.SecretKeyToBytes(sk)
		} else {
			var err error
			keyBytes, err = hex.DecodeString(keyHex)
			if err != nil {
				return fmt.Errorf("invalid key: %w", err)
			}
		}

		_, authority, err := quorum.SignerFromBytes(keyBytes)
		if err != nil {
			return err
		}

		addr := authority.Address()
		fmt.Printf("secret key: %s\n", hex.EncodeToString(keyBytes))
		fmt.Printf("authority:  %s\n", authority)
		fmt.Printf("address:    %s\n", hex.EncodeToString(addr[:]))
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a payload with a tagged signature",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyHex, _ := cmd.Flags().GetString("key")
		payload, _ := cmd.Flags().GetString("payload")
		epoch, _ := cmd.Flags().GetUint64("epoch")

		keyBytes, err := hex.DecodeString(keyHex)
		if err != nil {
			return fmt.Errorf("invalid key: %w", err)
		}
		signer, authority, err := quorum.SignerFromBytes(keyBytes)
		if err != nil {
			return err
		}

		msg, err := quorum.SigningBytes(quorum.PayloadTransaction, quorum.Epoch(epoch), []byte(payload))
		if err != nil {
			return err
		}
		sig, err := quorum.NewTaggedSignature(msg, signer)
		if err != nil {
			return err
		}

		addr := authority.Address()
		fmt.Printf("signature: %s\n", hex.EncodeToString(sig.Bytes()))
		fmt.Printf("address:   %s\n", hex.EncodeToString(addr[:]))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a tagged signature against a claimed signer",
	RunE: func(cmd *cobra.Command, args []string) error {
		sigHex, _ := cmd.Flags().GetString("signature")
		payload, _ := cmd.Flags().GetString("payload")
		epoch, _ := cmd.Flags().GetUint64("epoch")
		addrHex, _ := cmd.Flags().GetString("address")

		sigBytes, err := hex.DecodeString(sigHex)
		if err != nil {
			return fmt.Errorf("invalid signature: %w", err)
		}
		sig, err := quorum.ParseTaggedSignature(sigBytes)
		if err != nil {
			return err
		}

		addrBytes, err := hex.DecodeString(addrHex)
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
		author, err := ids.ToShortID(addrBytes)
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}

		msg, err := quorum.SigningBytes(quorum.PayloadTransaction, quorum.Epoch(epoch), []byte(payload))
		if err != nil {
			return err
		}
		if err := sig.Verify(msg, author); err != nil {
			return err
		}
		fmt.Println("signature valid")
		return nil
	},
}
