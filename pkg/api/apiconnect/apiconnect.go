// Package apiconnect wires the debtplan services to Connect: procedure
// names, HTTP handlers and typed clients. Messages are encoded as JSON.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/debtplan/pkg/api"
)

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "debtplan.v1.AuthService"
	// ObligationServiceName is the fully-qualified name of the ObligationService service.
	ObligationServiceName = "debtplan.v1.ObligationService"
)

// Procedure paths.
const (
	AuthServiceRegisterProcedure               = "/debtplan.v1.AuthService/Register"
	AuthServiceLoginProcedure                  = "/debtplan.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure         = "/debtplan.v1.AuthService/GetCurrentUser"
	ObligationServiceCreateObligationProcedure = "/debtplan.v1.ObligationService/CreateObligation"
	ObligationServiceGetObligationProcedure    = "/debtplan.v1.ObligationService/GetObligation"
	ObligationServiceListObligationsProcedure  = "/debtplan.v1.ObligationService/ListObligations"
	ObligationServiceUpdateObligationProcedure = "/debtplan.v1.ObligationService/UpdateObligation"
	ObligationServiceDeleteObligationProcedure = "/debtplan.v1.ObligationService/DeleteObligation"
	ObligationServiceGetScheduleProcedure      = "/debtplan.v1.ObligationService/GetSchedule"
	ObligationServiceRecordPaymentProcedure    = "/debtplan.v1.ObligationService/RecordPayment"
	ObligationServiceSettleObligationProcedure = "/debtplan.v1.ObligationService/SettleObligation"
	ObligationServiceListPaymentsProcedure     = "/debtplan.v1.ObligationService/ListPayments"
	ObligationServiceDeletePaymentProcedure    = "/debtplan.v1.ObligationService/DeletePayment"
	ObligationServiceGetDashboardProcedure     = "/debtplan.v1.ObligationService/GetDashboard"
	ObligationServiceExportScheduleProcedure   = "/debtplan.v1.ObligationService/ExportSchedule"
)

// AuthServiceHandler is implemented by the AuthService server.
type AuthServiceHandler interface {
	// Register creates an account and returns a session token.
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	// Login exchanges credentials for a session token.
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	// GetCurrentUser returns the authenticated user.
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(api.HandlerOptions(), opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService service.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService service at baseURL
// (e.g. http://localhost:8080). Requests are sent as JSON.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.ClientOption()}, opts...)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// ObligationServiceHandler is implemented by the ObligationService server.
type ObligationServiceHandler interface {
	// CreateObligation validates and stores a new obligation.
	CreateObligation(context.Context, *connect.Request[api.CreateObligationRequest]) (*connect.Response[api.CreateObligationResponse], error)
	// GetObligation returns one obligation with derived fields.
	GetObligation(context.Context, *connect.Request[api.GetObligationRequest]) (*connect.Response[api.GetObligationResponse], error)
	// ListObligations returns the caller's obligations, optionally filtered by derived status.
	ListObligations(context.Context, *connect.Request[api.ListObligationsRequest]) (*connect.Response[api.ListObligationsResponse], error)
	// UpdateObligation replaces the editable fields; the plan is locked once payments exist.
	UpdateObligation(context.Context, *connect.Request[api.UpdateObligationRequest]) (*connect.Response[api.UpdateObligationResponse], error)
	// DeleteObligation removes an obligation and its payments.
	DeleteObligation(context.Context, *connect.Request[api.DeleteObligationRequest]) (*connect.Response[api.DeleteObligationResponse], error)
	// GetSchedule lists the occurrences of an obligation's schedule.
	GetSchedule(context.Context, *connect.Request[api.GetScheduleRequest]) (*connect.Response[api.GetScheduleResponse], error)
	// RecordPayment records a partial or full payment without closing the obligation.
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	// SettleObligation is the pay-in-full action: records the remainder and marks the obligation paid.
	SettleObligation(context.Context, *connect.Request[api.SettleObligationRequest]) (*connect.Response[api.SettleObligationResponse], error)
	// ListPayments returns the payments of an obligation.
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	// DeletePayment removes a payment from an open obligation.
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
	// GetDashboard aggregates the caller's obligations and lists upcoming dues.
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
	// ExportSchedule renders an obligation's schedule as an XLSX workbook.
	ExportSchedule(context.Context, *connect.Request[api.ExportScheduleRequest]) (*connect.Response[api.ExportScheduleResponse], error)
}

// NewObligationServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewObligationServiceHandler(svc ObligationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(api.HandlerOptions(), opts...)
	mux := http.NewServeMux()
	mux.Handle(ObligationServiceCreateObligationProcedure, connect.NewUnaryHandler(ObligationServiceCreateObligationProcedure, svc.CreateObligation, opts...))
	mux.Handle(ObligationServiceGetObligationProcedure, connect.NewUnaryHandler(ObligationServiceGetObligationProcedure, svc.GetObligation, opts...))
	mux.Handle(ObligationServiceListObligationsProcedure, connect.NewUnaryHandler(ObligationServiceListObligationsProcedure, svc.ListObligations, opts...))
	mux.Handle(ObligationServiceUpdateObligationProcedure, connect.NewUnaryHandler(ObligationServiceUpdateObligationProcedure, svc.UpdateObligation, opts...))
	mux.Handle(ObligationServiceDeleteObligationProcedure, connect.NewUnaryHandler(ObligationServiceDeleteObligationProcedure, svc.DeleteObligation, opts...))
	mux.Handle(ObligationServiceGetScheduleProcedure, connect.NewUnaryHandler(ObligationServiceGetScheduleProcedure, svc.GetSchedule, opts...))
	mux.Handle(ObligationServiceRecordPaymentProcedure, connect.NewUnaryHandler(ObligationServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(ObligationServiceSettleObligationProcedure, connect.NewUnaryHandler(ObligationServiceSettleObligationProcedure, svc.SettleObligation, opts...))
	mux.Handle(ObligationServiceListPaymentsProcedure, connect.NewUnaryHandler(ObligationServiceListPaymentsProcedure, svc.ListPayments, opts...))
	mux.Handle(ObligationServiceDeletePaymentProcedure, connect.NewUnaryHandler(ObligationServiceDeletePaymentProcedure, svc.DeletePayment, opts...))
	mux.Handle(ObligationServiceGetDashboardProcedure, connect.NewUnaryHandler(ObligationServiceGetDashboardProcedure, svc.GetDashboard, opts...))
	mux.Handle(ObligationServiceExportScheduleProcedure, connect.NewUnaryHandler(ObligationServiceExportScheduleProcedure, svc.ExportSchedule, opts...))
	return "/" + ObligationServiceName + "/", mux
}

// ObligationServiceClient is a client for the ObligationService service.
type ObligationServiceClient interface {
	CreateObligation(context.Context, *connect.Request[api.CreateObligationRequest]) (*connect.Response[api.CreateObligationResponse], error)
	GetObligation(context.Context, *connect.Request[api.GetObligationRequest]) (*connect.Response[api.GetObligationResponse], error)
	ListObligations(context.Context, *connect.Request[api.ListObligationsRequest]) (*connect.Response[api.ListObligationsResponse], error)
	UpdateObligation(context.Context, *connect.Request[api.UpdateObligationRequest]) (*connect.Response[api.UpdateObligationResponse], error)
	DeleteObligation(context.Context, *connect.Request[api.DeleteObligationRequest]) (*connect.Response[api.DeleteObligationResponse], error)
	GetSchedule(context.Context, *connect.Request[api.GetScheduleRequest]) (*connect.Response[api.GetScheduleResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	SettleObligation(context.Context, *connect.Request[api.SettleObligationRequest]) (*connect.Response[api.SettleObligationResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
	ExportSchedule(context.Context, *connect.Request[api.ExportScheduleRequest]) (*connect.Response[api.ExportScheduleResponse], error)
}

// NewObligationServiceClient constructs a client for the ObligationService service at baseURL
// (e.g. http://localhost:8080). Requests are sent as JSON.
func NewObligationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ObligationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{api.ClientOption()}, opts...)
	return &obligationServiceClient{
		createObligation: connect.NewClient[api.CreateObligationRequest, api.CreateObligationResponse](httpClient, baseURL+ObligationServiceCreateObligationProcedure, opts...),
		getObligation:    connect.NewClient[api.GetObligationRequest, api.GetObligationResponse](httpClient, baseURL+ObligationServiceGetObligationProcedure, opts...),
		listObligations:  connect.NewClient[api.ListObligationsRequest, api.ListObligationsResponse](httpClient, baseURL+ObligationServiceListObligationsProcedure, opts...),
		updateObligation: connect.NewClient[api.UpdateObligationRequest, api.UpdateObligationResponse](httpClient, baseURL+ObligationServiceUpdateObligationProcedure, opts...),
		deleteObligation: connect.NewClient[api.DeleteObligationRequest, api.DeleteObligationResponse](httpClient, baseURL+ObligationServiceDeleteObligationProcedure, opts...),
		getSchedule:      connect.NewClient[api.GetScheduleRequest, api.GetScheduleResponse](httpClient, baseURL+ObligationServiceGetScheduleProcedure, opts...),
		recordPayment:    connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+ObligationServiceRecordPaymentProcedure, opts...),
		settleObligation: connect.NewClient[api.SettleObligationRequest, api.SettleObligationResponse](httpClient, baseURL+ObligationServiceSettleObligationProcedure, opts...),
		listPayments:     connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+ObligationServiceListPaymentsProcedure, opts...),
		deletePayment:    connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL+ObligationServiceDeletePaymentProcedure, opts...),
		getDashboard:     connect.NewClient[api.GetDashboardRequest, api.GetDashboardResponse](httpClient, baseURL+ObligationServiceGetDashboardProcedure, opts...),
		exportSchedule:   connect.NewClient[api.ExportScheduleRequest, api.ExportScheduleResponse](httpClient, baseURL+ObligationServiceExportScheduleProcedure, opts...),
	}
}

type obligationServiceClient struct {
	createObligation *connect.Client[api.CreateObligationRequest, api.CreateObligationResponse]
	getObligation    *connect.Client[api.GetObligationRequest, api.GetObligationResponse]
	listObligations  *connect.Client[api.ListObligationsRequest, api.ListObligationsResponse]
	updateObligation *connect.Client[api.UpdateObligationRequest, api.UpdateObligationResponse]
	deleteObligation *connect.Client[api.DeleteObligationRequest, api.DeleteObligationResponse]
	getSchedule      *connect.Client[api.GetScheduleRequest, api.GetScheduleResponse]
	recordPayment    *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	settleObligation *connect.Client[api.SettleObligationRequest, api.SettleObligationResponse]
	listPayments     *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	deletePayment    *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
	getDashboard     *connect.Client[api.GetDashboardRequest, api.GetDashboardResponse]
	exportSchedule   *connect.Client[api.ExportScheduleRequest, api.ExportScheduleResponse]
}

func (c *obligationServiceClient) CreateObligation(ctx context.Context, req *connect.Request[api.CreateObligationRequest]) (*connect.Response[api.CreateObligationResponse], error) {
	return c.createObligation.CallUnary(ctx, req)
}

func (c *obligationServiceClient) GetObligation(ctx context.Context, req *connect.Request[api.GetObligationRequest]) (*connect.Response[api.GetObligationResponse], error) {
	return c.getObligation.CallUnary(ctx, req)
}

func (c *obligationServiceClient) ListObligations(ctx context.Context, req *connect.Request[api.ListObligationsRequest]) (*connect.Response[api.ListObligationsResponse], error) {
	return c.listObligations.CallUnary(ctx, req)
}

func (c *obligationServiceClient) UpdateObligation(ctx context.Context, req *connect.Request[api.UpdateObligationRequest]) (*connect.Response[api.UpdateObligationResponse], error) {
	return c.updateObligation.CallUnary(ctx, req)
}

func (c *obligationServiceClient) DeleteObligation(ctx context.Context, req *connect.Request[api.DeleteObligationRequest]) (*connect.Response[api.DeleteObligationResponse], error) {
	return c.deleteObligation.CallUnary(ctx, req)
}

func (c *obligationServiceClient) GetSchedule(ctx context.Context, req *connect.Request[api.GetScheduleRequest]) (*connect.Response[api.GetScheduleResponse], error) {
	return c.getSchedule.CallUnary(ctx, req)
}

func (c *obligationServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *obligationServiceClient) SettleObligation(ctx context.Context, req *connect.Request[api.SettleObligationRequest]) (*connect.Response[api.SettleObligationResponse], error) {
	return c.settleObligation.CallUnary(ctx, req)
}

func (c *obligationServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *obligationServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}

func (c *obligationServiceClient) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *obligationServiceClient) ExportSchedule(ctx context.Context, req *connect.Request[api.ExportScheduleRequest]) (*connect.Response[api.ExportScheduleResponse], error) {
	return c.exportSchedule.CallUnary(ctx, req)
}
