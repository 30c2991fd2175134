package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/pkg/config"
	lcsolana "launchcontrol/pkg/solana"
	"launchcontrol/pkg/utils"

	"github.com/gagliardetto/solana-go/rpc"
	logrus "github.com/sirupsen/logrus"
)

const verifyTimeout = 30 * time.Second

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	endpoint := os.Getenv("SOLANA_RPC_ENDPOINT")
	if endpoint == "" {
		endpoint = rpc.MainNetBeta_RPC
	}
	rpcClient := rpc.New(endpoint)

	msgConsumer, err := config.NewConsumer(config.QueueContributionSubmitted)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Contribution verification worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var submit lcsolana.ContributionSubmitMessage
		if err := json.Unmarshal(msg, &submit); err != nil {
			// Malformed payloads never become valid; drop them.
			logrus.Errorf("Failed to unmarshal message: %v", err)
			return nil
		}
		return handleSubmission(rpcClient, submit)
	})
	if err != nil {
		logrus.Fatal("Failed to start consumer: ", err)
	}
}

// handleSubmission verifies a declared deposit on chain and records it.
// A returned error requeues the message, so only transient failures
// (RPC outages, DB errors) propagate; terminal outcomes are logged and
// swallowed.
func handleSubmission(rpcClient *rpc.Client, submit lcsolana.ContributionSubmitMessage) error {
	fields := logrus.Fields{
		"round_id": submit.RoundID,
		"user_id":  submit.UserID,
		"tx_hash":  submit.TxHash,
		"amount":   submit.Amount,
	}

	amount, err := utils.ParseBig(submit.Amount)
	if err != nil {
		logrus.WithFields(fields).Errorf("Invalid amount in message: %v", err)
		return nil
	}

	round, err := business.GetRound(config.DB, submit.RoundID)
	if err != nil {
		if errors.Is(err, business.ErrNotFound) {
			logrus.WithFields(fields).Error("Round no longer exists, dropping submission")
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	if err := lcsolana.VerifyVaultDeposit(ctx, rpcClient, submit.TxHash, round.VaultAddress, amount); err != nil {
		if errors.Is(err, lcsolana.ErrVerification) {
			logrus.WithFields(fields).Warnf("Deposit rejected: %v", err)
			return nil
		}
		logrus.WithFields(fields).Errorf("Verification RPC failed, requeueing: %v", err)
		return err
	}

	err = business.RecordContribution(config.DB, business.RecordContributionInput{
		RoundID:       submit.RoundID,
		UserID:        submit.UserID,
		WalletAddress: submit.WalletAddress,
		Amount:        amount,
		ChainID:       submit.ChainID,
		TxHash:        submit.TxHash,
	})
	switch {
	case err == nil:
		logrus.WithFields(fields).Info("Contribution confirmed")
		return nil
	case errors.Is(err, business.ErrStateConflict):
		// Duplicate delivery or a round already finalized.
		logrus.WithFields(fields).Warnf("Contribution not recorded: %v", err)
		return nil
	case errors.Is(err, business.ErrValidation):
		logrus.WithFields(fields).Errorf("Contribution rejected: %v", err)
		return nil
	default:
		return err
	}
}
