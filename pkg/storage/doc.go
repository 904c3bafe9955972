// Package storage provides the result-store collaborator that receives
// completed analysis reports. The scheduler only ever writes full reports;
// a failed job never reaches the store.
package storage
