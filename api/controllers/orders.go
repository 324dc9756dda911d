package controllers

import (
	"net/http"
	"time"

	"github.com/bazaarlabs/bazaar-backend/api/responses"
	"github.com/bazaarlabs/bazaar-backend/api/validators"
	checkoutsvc "github.com/bazaarlabs/bazaar-backend/internal/checkout"
	ordersvc "github.com/bazaarlabs/bazaar-backend/internal/orders"
	"github.com/bazaarlabs/bazaar-backend/pkg/db/models"
	"github.com/bazaarlabs/bazaar-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	Status        string              `json:"status"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	FullName      string              `json:"full_name"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	Phone         string              `json:"phone"`
	PaymentMethod string              `json:"payment_method"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []orderItemResponse `json:"items"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			SellerID:  item.SellerID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return orderResponse{
		ID:            order.ID,
		Status:        order.Status.String(),
		TotalPrice:    order.TotalPrice,
		FullName:      order.FullName,
		Address:       order.Address,
		City:          order.City,
		Phone:         order.Phone,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
		Items:         items,
	}
}

func newOrderListResponse(rows []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderResponse(&rows[i]))
	}
	return out
}

type createOrderRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	Address       string `json:"address" validate:"required"`
	City          string `json:"city" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// OrderCreate runs checkout for the caller's cart.
func OrderCreate(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), identity.UserID, checkoutsvc.CreateOrderInput{
			FullName:      payload.FullName,
			Address:       payload.Address,
			City:          payload.City,
			Phone:         payload.Phone,
			PaymentMethod: payload.PaymentMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// MyOrders lists the caller's orders, newest first.
func MyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListMyOrders(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(rows))
	}
}

// MyOrder returns one of the caller's orders.
func MyOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuidParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetMyOrder(r.Context(), identity.UserID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
