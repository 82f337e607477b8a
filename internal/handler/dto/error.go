// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the error body returned by both services.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CodeCustomerNotFound is the error code the customer service sends when a
// customer does not exist. Clients treat only this 404 as "no such customer".
const CodeCustomerNotFound = "CUSTOMER_NOT_FOUND"
