package api

import (
	"context"
	"fmt"
)

type Notifications struct {
	r Requester
}

func (n *Notifications) List(ctx context.Context) ([]Notification, error) {
	var out []Notification
	if err := n.r.Get(ctx, RouteNotifications, nil, &out); err != nil {
		return nil, fmt.Errorf("[Notifications.List] %w", err)
	}
	return out, nil
}

// Test asks the backend to send a test message through every channel
func (n *Notifications) Test(ctx context.Context) (*NotificationTest, error) {
	var out NotificationTest
	if err := n.r.Post(ctx, RouteNotificationsTest, nil, &out); err != nil {
		return nil, fmt.Errorf("[Notifications.Test] %w", err)
	}
	return &out, nil
}

func (n *Notifications) MarkRead(ctx context.Context, id int) error {
	if err := n.r.Patch(ctx, withID(RouteNotifications, id)+"/leida", nil, nil); err != nil {
		return fmt.Errorf("[Notifications.MarkRead] %w", err)
	}
	return nil
}
