package model

// Account is a customer balance. Balance never goes negative.
type Account struct {
	CustomerID int `json:"customerId" yaml:"customerId"`
	Balance    int `json:"balance" yaml:"balance"`
}
