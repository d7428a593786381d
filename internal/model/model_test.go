package model_test

import (
	"testing"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestMaintenanceOrderModel_Validate(t *testing.T) {
	valid := func() *model.MaintenanceOrderModel {
		return &model.MaintenanceOrderModel{
			OrderNumber:   "MO-20250101-ABCDEF12",
			UnitID:        int64Ptr(3),
			RequestorType: "staff",
			ExpenseTypeID: 2,
			Title:         "Leaking tap",
			Description:   "Kitchen tap leaks",
			Status:        "submitted",
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(m *model.MaintenanceOrderModel)
		msg    string
	}{
		{"missing order number", func(m *model.MaintenanceOrderModel) { m.OrderNumber = "" }, "order number is required"},
		{"missing location", func(m *model.MaintenanceOrderModel) { m.UnitID = nil }, "unit ID or property ID is required"},
		{"missing expense type", func(m *model.MaintenanceOrderModel) { m.ExpenseTypeID = 0 }, "expense type ID is required"},
		{"missing title", func(m *model.MaintenanceOrderModel) { m.Title = "" }, "title is required"},
		{"missing status", func(m *model.MaintenanceOrderModel) { m.Status = "" }, "status is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			err := m.Validate()
			assert.EqualError(t, err, tt.msg)
		})
	}

	// property 也可以作为位置
	m := valid()
	m.UnitID = nil
	m.PropertyID = int64Ptr(9)
	assert.NoError(t, m.Validate())
}

func TestEventModel_ValidateDefaultsStatus(t *testing.T) {
	e := &model.EventModel{ID: "evt-1", OrderID: 1, Type: "order.created", Data: []byte(`{}`)}
	assert.NoError(t, e.Validate())
	assert.Equal(t, model.EventStatusPending, e.Status)

	e = &model.EventModel{ID: "evt-2", Type: "order.created", Data: []byte(`{}`)}
	assert.EqualError(t, e.Validate(), "order ID is required")
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "maintenance_orders", model.MaintenanceOrderModel{}.TableName())
	assert.Equal(t, "vendors", model.VendorModel{}.TableName())
	assert.Equal(t, "order_state_history", model.StateHistoryModel{}.TableName())
	assert.Equal(t, "audit_logs", model.AuditLogModel{}.TableName())
	assert.Equal(t, "events", model.EventModel{}.TableName())
}
