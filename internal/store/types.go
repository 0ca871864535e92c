package store

// Currencies used on ledger legs. BTC legs are denominated in satoshis and
// display-currency legs in cents.
const (
	CurrencyBTC = "BTC"
	CurrencyUSD = "USD"
)

// Semantic entry types recorded in leg metadata.
const (
	TypeOnChainPayment   = "onchain_payment"
	TypeOnChainReceipt   = "onchain_receipt"
	TypeOnChainOnUs      = "onchain_on_us"
	TypeFeeReimbursement = "fee_reimbursement"
	TypeOnboardingEarn   = "onboarding_earn"
)
