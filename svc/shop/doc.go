// Package shop is the surface a front-end calls: accounts and sessions,
// quota-checked product changes, plan checkout and the UI language.
//
// Every operation resolves the current identity from the session records first
// and works inside that identity's namespace. AddProduct validates the input,
// asks the subscription ledger for quota and only then writes the product;
// a refusal is reported as ErrQuotaExceeded. Checkout by a guest remembers the
// intent, and the next Login hands it back as PendingAction so the caller can
// resume the purchase.
package shop
