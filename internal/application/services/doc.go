// Package services holds the application logic of the record API: the schema cache and the
// record listing built on top of it.
package services
