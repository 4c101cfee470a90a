package services

import (
	"testing"
)

func TestRenderMessage(t *testing.T) {
	tests := []struct {
		name     string
		template string
		trackID  string
		orderID  string
		expected string
	}{
		{
			name:     "both placeholders",
			template: "Payment received. Track: {track_id}, order: {order_id}",
			trackID:  "884426",
			orderID:  "order-1",
			expected: "Payment received. Track: 884426, order: order-1",
		},
		{
			name:     "no placeholders",
			template: "Payment failed.",
			trackID:  "884426",
			orderID:  "order-1",
			expected: "Payment failed.",
		},
		{
			name:     "repeated placeholder",
			template: "{track_id}/{track_id}",
			trackID:  "7",
			orderID:  "order-1",
			expected: "7/7",
		},
		{
			name:     "empty track id",
			template: "Track: {track_id}",
			trackID:  "",
			orderID:  "order-1",
			expected: "Track: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderMessage(tt.template, tt.trackID, tt.orderID)
			if result != tt.expected {
				t.Errorf("RenderMessage(%q) = %q; want %q", tt.template, result, tt.expected)
			}
		})
	}
}
