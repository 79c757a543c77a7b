package models

// TransactionType gives a transaction amount its sign.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// PaymentMethodType is the kind of payment method.
type PaymentMethodType string

const (
	PaymentCredit PaymentMethodType = "credit"
	PaymentDebit  PaymentMethodType = "debit"
	PaymentCash   PaymentMethodType = "cash"
)

// AssetType classifies an investment holding. It decides which price source
// quotes it.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCedear AssetType = "cedear"
	AssetBond   AssetType = "bond"
	AssetON     AssetType = "on" // obligación negociable
	AssetCrypto AssetType = "crypto"
	AssetFCI    AssetType = "fci"
)

// Currency is one of the two currencies tracked by the ledger.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Valid reports whether t is a known payment method type.
func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentCredit, PaymentDebit, PaymentCash:
		return true
	}
	return false
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case AssetStock, AssetCedear, AssetBond, AssetON, AssetCrypto, AssetFCI:
		return true
	}
	return false
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool { return c == CurrencyARS || c == CurrencyUSD }
