// Package models contains the GORM persistence models for the project
// control aggregates. Domain types carry no ORM tags; each model converts
// to and from its aggregate with ToDomain and a ...FromDomain constructor.
// Child rows (items, work packages, revisions, invoices) are separate
// models saved in the aggregate's transaction.
package models
