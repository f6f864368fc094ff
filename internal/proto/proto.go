// Package proto holds the accounts.v1 gRPC bindings generated from
// api/accounts/v1/accounts.proto.
package proto

//go:generate protoc -I ../../api --go_out=../.. --go_opt=module=github.com/dmitrijs2005/gophaccounts --go-grpc_out=../.. --go-grpc_opt=module=github.com/dmitrijs2005/gophaccounts accounts/v1/accounts.proto

// TokenTypeBearer is the token_type of every TokenPairResponse.
const TokenTypeBearer = "bearer"
