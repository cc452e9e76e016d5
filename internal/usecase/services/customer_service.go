package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/core-ledger/internal/adapter/http/models"
	"github.com/api-sage/core-ledger/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/core-ledger/internal/commons"
	"github.com/api-sage/core-ledger/internal/domain"
	"github.com/api-sage/core-ledger/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CustomerService struct {
	customerRepo repo_interfaces.CustomerRepository
}

func NewCustomerService(customerRepo repo_interfaces.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CreateCustomerResponse], error) {
	logger.Info("customer service create customer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.CreateCustomerResponse]("validation failed", err.Error()), err
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.TransactionPin)), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("customer service pin hashing failed", err, nil)
		return commons.ErrorResponse[models.CreateCustomerResponse]("failed to create customer", "Unable to create customer right now"), err
	}

	customerID := uuid.NewString()
	customer := domain.Customer{
		CustomerID:         customerID,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		SignerKey:          "customer-" + customerID,
		TransactionPinHash: string(pinHash),
	}

	created, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		logger.Error("customer service create customer failed", err, logger.Fields{
			"customerId": customerID,
		})
		return commons.ErrorResponse[models.CreateCustomerResponse]("failed to create customer", "Unable to create customer right now"), err
	}

	response := models.CreateCustomerResponse{
		ID:         created.ID,
		CustomerID: created.CustomerID,
		FirstName:  created.FirstName,
		LastName:   created.LastName,
	}

	logger.Info("customer service create customer success", logger.Fields{
		"customerId": created.CustomerID,
	})
	return commons.SuccessResponse("customer created successfully", response), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, customerID string) (commons.Response[models.CreateCustomerResponse], error) {
	if strings.TrimSpace(customerID) == "" {
		err := fmt.Errorf("customerId is required")
		return commons.ErrorResponse[models.CreateCustomerResponse]("validation failed", err.Error()), err
	}

	customer, err := s.customerRepo.GetByCustomerID(ctx, strings.TrimSpace(customerID))
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return commons.ErrorResponse[models.CreateCustomerResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[models.CreateCustomerResponse]("failed to get customer", "Unable to fetch customer right now"), err
	}

	response := models.CreateCustomerResponse{
		ID:         customer.ID,
		CustomerID: customer.CustomerID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
	}
	return commons.SuccessResponse("customer fetched successfully", response), nil
}
