package solana

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Verification failures. All wrap ErrVerification so callers can treat the
// whole family as "do not confirm this contribution".
var (
	ErrVerification      = errors.New("transaction verification failed")
	ErrTxNotFound        = fmt.Errorf("%w: transaction not found", ErrVerification)
	ErrTxFailed          = fmt.Errorf("%w: transaction failed on chain", ErrVerification)
	ErrRecipientMismatch = fmt.Errorf("%w: vault not credited by transaction", ErrVerification)
	ErrInsufficientValue = fmt.Errorf("%w: transferred value below declared amount", ErrVerification)
)

// GetTransactionBySignature fetches a transaction by signature from Solana RPC.
func GetTransactionBySignature(ctx context.Context, client *rpc.Client, signature string) (*rpc.GetTransactionResult, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	maxVer := rpc.MaxSupportedTransactionVersion1
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxVer,
	}
	txResult, err := client.GetTransaction(ctx, sig, opts)
	if err != nil {
		return nil, fmt.Errorf("getTransaction: %w", err)
	}
	if txResult == nil || txResult.Transaction == nil {
		return nil, ErrTxNotFound
	}
	return txResult, nil
}

// VerifyVaultDeposit checks that the given signature landed successfully and
// credited the vault with at least `expected` lamports. The lamport delta is
// taken from the pre/post balance arrays, so it covers both direct transfers
// and program-routed deposits.
func VerifyVaultDeposit(ctx context.Context, client *rpc.Client, signature, vaultAddress string, expected *big.Int) error {
	txResult, err := GetTransactionBySignature(ctx, client, signature)
	if err != nil {
		return err
	}
	meta := txResult.Meta
	if meta == nil {
		return ErrTxNotFound
	}
	if meta.Err != nil {
		return ErrTxFailed
	}

	tx, err := txResult.Transaction.GetTransaction()
	if err != nil {
		return fmt.Errorf("decode transaction: %w", err)
	}

	vault, err := solana.PublicKeyFromBase58(vaultAddress)
	if err != nil {
		return fmt.Errorf("invalid vault address: %w", err)
	}

	// Build the full account key list (static plus loaded addresses for
	// versioned transactions) so the balance arrays index correctly.
	accountKeys := make([]solana.PublicKey, 0, len(tx.Message.AccountKeys)+len(meta.LoadedAddresses.Writable)+len(meta.LoadedAddresses.ReadOnly))
	accountKeys = append(accountKeys, tx.Message.AccountKeys...)
	accountKeys = append(accountKeys, meta.LoadedAddresses.Writable...)
	accountKeys = append(accountKeys, meta.LoadedAddresses.ReadOnly...)

	vaultIndex := -1
	for i, key := range accountKeys {
		if key.Equals(vault) {
			vaultIndex = i
			break
		}
	}
	if vaultIndex < 0 || vaultIndex >= len(meta.PreBalances) || vaultIndex >= len(meta.PostBalances) {
		return ErrRecipientMismatch
	}

	pre := new(big.Int).SetUint64(meta.PreBalances[vaultIndex])
	post := new(big.Int).SetUint64(meta.PostBalances[vaultIndex])
	delta := new(big.Int).Sub(post, pre)
	if delta.Sign() <= 0 {
		return ErrRecipientMismatch
	}
	if expected != nil && delta.Cmp(expected) < 0 {
		return ErrInsufficientValue
	}
	return nil
}

// ListVaultSignatures returns the most recent transaction signatures touching
// a vault address, newest first. Used to audit a vault against the ledger.
func ListVaultSignatures(ctx context.Context, client *rpc.Client, vaultAddress string, limit int) ([]string, error) {
	vault, err := solana.PublicKeyFromBase58(vaultAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid vault address: %w", err)
	}
	opts := &rpc.GetSignaturesForAddressOpts{}
	if limit > 0 {
		opts.Limit = &limit
	}
	sigs, err := client.GetSignaturesForAddressWithOpts(ctx, vault, opts)
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress: %w", err)
	}
	out := make([]string, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, s.Signature.String())
	}
	return out, nil
}
