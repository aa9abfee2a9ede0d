package domain

// AccountRef addresses one balance row (a wallet or a bank) for ledger
// operations.
type AccountRef struct {
	Kind string // AccountKindWallet | AccountKindBank
	ID   uint
}

func WalletRef(id uint) AccountRef { return AccountRef{Kind: AccountKindWallet, ID: id} }
func BankRef(id uint) AccountRef   { return AccountRef{Kind: AccountKindBank, ID: id} }
