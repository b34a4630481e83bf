// Package models defines the persisted records of debtplan.
//
// # Records
//
//   - User: a registered account; owns obligations
//   - Obligation: a debt with a payment plan (one-time, installments or recurring)
//   - Payment: an amount recorded against an obligation
//
// Records are plain data. Schedule, status and balance rules live in
// internal/scheduler; ToScheduler bridges the two.
//
// # Conventions
//
//  1. IDs are UUID strings assigned by the store when empty
//  2. Relationships use ID strings, never pointers
//  3. CreatedAt/UpdatedAt are Unix seconds
//  4. Calendar dates (due dates, payment dates) are date-only time.Time values at UTC midnight
//  5. Only "active" and "paid" are stored; "overdue" is derived at read time
package models
