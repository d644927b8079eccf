package cqrs

// ---------- Customer queries ----------

// GetCustomerQuery fetches a customer with its accounts and their ledger entries.
type GetCustomerQuery struct {
	CustomerID int64
}

// ---------- Ledger queries ----------

// ListTransactionsQuery fetches all ledger entries for an account.
type ListTransactionsQuery struct {
	AccountID int64
}
