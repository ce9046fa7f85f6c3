package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// ChainBackend submits a badge mint and waits for confirmation.
type ChainBackend interface {
	Mint(ctx context.Context, to string, tokenURI string) (txHash string, err error)
}

// MintService records badge ownership on-chain. Minting is strictly
// best-effort: every outcome is captured in a MintReceipt and none of them can
// fail the claim that triggered it.
type MintService struct {
	appContext.DefaultService

	sqlSvc  *PostgresService
	backend ChainBackend

	tokenURIBase   string
	confirmTimeout time.Duration
}

const MINT_SVC = "mint_svc"

const defaultConfirmTimeout = 90 * time.Second

func (svc MintService) Id() string {
	return MINT_SVC
}

func (svc *MintService) Configure(ctx *appContext.Context) error {
	svc.tokenURIBase = os.Getenv("TOKEN_URI_BASE")
	if svc.tokenURIBase == "" {
		svc.tokenURIBase = "https://badges.geoid.xyz/"
	}

	svc.confirmTimeout = defaultConfirmTimeout
	if s := os.Getenv("MINT_CONFIRM_TIMEOUT"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			svc.confirmTimeout = time.Duration(secs) * time.Second
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MintService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)

	if svc.backend != nil {
		return nil
	}

	rpcURL := os.Getenv("CHAIN_RPC_URL")
	if rpcURL == "" {
		log.Info("CHAIN_RPC_URL not set, on-chain minting disabled")
		return nil
	}

	backend, err := newEthBackend(rpcURL)
	if err != nil {
		return fmt.Errorf("failed to initialise chain backend: %w", err)
	}
	svc.backend = backend
	return nil
}

// TokenURISlug derives the metadata slug from a badge name: lowercased,
// apostrophes stripped, spaces hyphenated.
func TokenURISlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, "’", "")
	return strings.ReplaceAll(slug, " ", "-")
}

func (svc *MintService) TokenURI(badgeName string) string {
	return svc.tokenURIBase + TokenURISlug(badgeName)
}

// MintBadge attempts the on-chain mint for a fresh award. Without a payable
// address (or with minting disabled) the receipt is recorded as skipped.
// MintBadge never returns an error; the receipt's status is the outcome.
func (svc *MintService) MintBadge(ctx context.Context, award *model.UserBadge, badge *model.Badge, chainAddress string) *model.MintReceipt {
	receipt := &model.MintReceipt{
		UserBadgeID:  award.ID,
		BadgeID:      badge.ID,
		ChainAddress: chainAddress,
	}

	if chainAddress == "" || svc.backend == nil {
		receipt.Status = shared.MintStatusSkipped
		svc.persistReceipt(receipt)
		recordMint(receipt.Status)
		return receipt
	}

	receipt.Status = shared.MintStatusSubmitted
	svc.persistReceipt(receipt)

	mintCtx, cancel := context.WithTimeout(ctx, svc.confirmTimeout)
	defer cancel()

	txHash, err := svc.backend.Mint(mintCtx, chainAddress, svc.TokenURI(badge.Name))
	if err != nil {
		receipt.Status = shared.MintStatusFailed
		receipt.Error = err.Error()
		log.WithError(err).WithFields(log.Fields{
			"badge_id": badge.ID,
			"address":  chainAddress,
		}).Warn("Badge mint failed")
	} else {
		receipt.Status = shared.MintStatusConfirmed
		receipt.TxHash = txHash
		log.WithFields(log.Fields{
			"badge_id": badge.ID,
			"tx_hash":  txHash,
		}).Info("Badge minted")
	}

	svc.persistReceipt(receipt)
	recordMint(receipt.Status)
	return receipt
}

// persistReceipt is best-effort: a receipt write failure is logged, never
// propagated, since the award it documents is already committed.
func (svc *MintService) persistReceipt(receipt *model.MintReceipt) {
	var err error
	if receipt.ID == "" {
		_, err = svc.sqlSvc.CreateMintReceipt(receipt)
	} else {
		err = svc.sqlSvc.UpdateMintReceipt(receipt)
	}
	if err != nil {
		log.WithError(err).WithField("user_badge_id", receipt.UserBadgeID).Error("Failed to persist mint receipt")
	}
}

// ethBackend signs and submits mintTo transactions against the badge contract.
type ethBackend struct {
	client   *ethclient.Client
	chainID  *big.Int
	contract ethcommon.Address
	signer   *ecdsa.PrivateKey
	abi      abi.ABI
}

const mintABIJSON = `[{"inputs":[{"name":"to","type":"address"},{"name":"tokenURI","type":"string"}],"name":"mintTo","outputs":[{"name":"tokenId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}]`

func newEthBackend(rpcURL string) (*ethBackend, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	chainID, ok := new(big.Int).SetString(os.Getenv("CHAIN_ID"), 10)
	if !ok {
		return nil, errors.New("CHAIN_ID is missing or not a number")
	}

	contractHex := os.Getenv("BADGE_CONTRACT_ADDRESS")
	if !ethcommon.IsHexAddress(contractHex) {
		return nil, fmt.Errorf("invalid BADGE_CONTRACT_ADDRESS %q", contractHex)
	}

	signer, err := crypto.HexToECDSA(strings.TrimPrefix(os.Getenv("MINT_SIGNER_KEY"), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid MINT_SIGNER_KEY: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(mintABIJSON))
	if err != nil {
		return nil, err
	}

	return &ethBackend{
		client:   client,
		chainID:  chainID,
		contract: ethcommon.HexToAddress(contractHex),
		signer:   signer,
		abi:      parsedABI,
	}, nil
}

func (b *ethBackend) Mint(ctx context.Context, to string, tokenURI string) (string, error) {
	if !ethcommon.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address %q", to)
	}

	input, err := b.abi.Pack("mintTo", ethcommon.HexToAddress(to), tokenURI)
	if err != nil {
		return "", err
	}

	from := crypto.PubkeyToAddress(b.signer.PublicKey)
	nonce, err := b.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := b.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	gasLimit, err := b.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &b.contract,
		Data: input,
	})
	if err != nil {
		return "", fmt.Errorf("gas estimation failed: %w", err)
	}

	tx := types.NewTransaction(nonce, b.contract, big.NewInt(0), gasLimit, gasPrice, input)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(b.chainID), b.signer)
	if err != nil {
		return "", err
	}

	if err := b.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to submit mint tx: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, b.client, signedTx)
	if err != nil {
		return "", fmt.Errorf("mint tx %s not confirmed: %w", signedTx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("mint tx %s reverted", signedTx.Hash().Hex())
	}

	return signedTx.Hash().Hex(), nil
}
