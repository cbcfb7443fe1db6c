package domain

type TransactionCreated struct {
	TransactionID string      `json:"transactionId"`
	Total         int64       `json:"total"`
	Items         []OrderItem `json:"items"`
}

type TransactionCompleted struct {
	TransactionID string `json:"transactionId"`
}

type TransactionFailed struct {
	TransactionID string `json:"transactionId"`
}
