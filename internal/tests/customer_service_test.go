package services_test

import (
	"context"
	"testing"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/usecase/services"
)

func TestCustomerServiceCreateCustomerValidationError(t *testing.T) {
	svc := services.NewCustomerService(nil)

	_, err := svc.CreateCustomer(context.Background(), models.CreateCustomerRequest{
		FirstName:      "Ada",
		LastName:       "Tester",
		PhoneNumber:    "08030000000",
		TransactionPin: "12345",
	})
	if err == nil {
		t.Fatal("expected validation error for a 5 digit pin")
	}
}

func TestCustomerServiceCreateAndGetCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.customers.CreateCustomer(ctx, models.CreateCustomerRequest{
		FirstName:      "Ada",
		LastName:       "Tester",
		PhoneNumber:    "08030000000",
		TransactionPin: "1234",
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if created.Data.CustomerID == "" {
		t.Fatal("expected a customer id to be assigned")
	}

	got, err := env.customers.GetCustomer(ctx, created.Data.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if got.Data.FirstName != "Ada" {
		t.Fatalf("expected first name Ada, got %s", got.Data.FirstName)
	}

	stored, err := env.customerRepo.GetByCustomerID(ctx, created.Data.CustomerID)
	if err != nil {
		t.Fatalf("repository lookup failed: %v", err)
	}
	if stored.TransactionPinHash == "1234" || stored.TransactionPinHash == "" {
		t.Fatal("expected the transaction pin to be stored hashed")
	}
	if stored.SignerKey == "" {
		t.Fatal("expected a signer key to be assigned")
	}
}
