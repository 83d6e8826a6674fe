// Package domain defines the core data structures and business rules of the Raseed application.
// It contains the receipt models, such as DomainEntry, ReceiptFormData and Receipt, the validation
// rules that turn raw form input into a ReceiptFormData, and the repository interface that
// defines the contract for receipt persistence.
//
// This package serves as the central point for application-wide types and business rules,
// ensuring a clean separation between the application's core logic and its implementation details,
// such as the storage backend, the web front end or the CLI. By defining an interface for the
// repository, the domain package remains independent of the storage technology.
package domain
