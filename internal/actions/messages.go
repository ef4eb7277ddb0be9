package actions

import "fmt"

const (
	msgProviderMissing  = "Wallet not detected. Please install a wallet."
	msgInvalidAmount    = "Please enter a valid %s amount"
	msgConnecting       = "Connecting to wallet..."
	msgConnected        = "Wallet connected successfully!"
	msgConnectFailed    = "Failed to connect wallet"
	msgFunding          = "Processing donation of %s %s..."
	msgFunded           = "Successfully donated %s %s! Thank you for the coffee! ☕"
	msgFundFailed       = "Transaction failed. Please try again."
	msgFetchingBalance  = "Fetching balance..."
	msgBalance          = "Contract balance: %s %s"
	msgBalanceFailed    = "Failed to fetch balance"
	msgWithdrawing      = "Processing withdrawal..."
	msgWithdrawn        = "Withdrawal completed successfully!"
	msgWithdrawFailed   = "Withdrawal failed. Please try again."
	InstallPromptLabel  = "Please install a wallet!"
	ConnectedLabel      = "✓ Connected"
	DefaultConnectLabel = "Connect Wallet"
)

// PendingText is the status shown while an action is in flight
func (h *Handlers) PendingText(action Action, amount string) string {
	switch action {
	case ActionConnect:
		return msgConnecting
	case ActionFund:
		return fmt.Sprintf(msgFunding, amount, h.symbol)
	case ActionBalance:
		return msgFetchingBalance
	case ActionWithdraw:
		return msgWithdrawing
	default:
		return ""
	}
}
