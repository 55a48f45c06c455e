package model

import "time"

// Message reports a transaction outcome on a notification endpoint.
type Message struct {
	ID            string    `json:"id"`
	TransactionID int       `json:"transactionId"`
	CustomerID    int       `json:"customerId"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
