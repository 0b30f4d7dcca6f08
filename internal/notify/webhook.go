package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier 向外部协作方（群机器人、看板服务等）推送生产事件
// 即发即弃：发送失败只记日志，从不阻塞或回滚触发它的生产操作
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &WebhookNotifier{client: client, url: url, logger: logger}
}

// OrderEvent 推送的事件载荷
type OrderEvent struct {
	Event        string `json:"event"` // completed / phase_changed / force_completed / reset
	OrderID      string `json:"order_id"`
	OrderNo      string `json:"order_no"`
	ProductCode  string `json:"product_code"`
	Status       string `json:"status"`
	FullyDoneQty int64  `json:"fully_done_qty"`
	RequestedQty int64  `json:"requested_qty"`
	BatchID      string `json:"batch_id,omitempty"`
	Operator     string `json:"operator,omitempty"`
	At           int64  `json:"at"` // unix秒
}

// Send 推送事件
func (n *WebhookNotifier) Send(ctx context.Context, ev OrderEvent) {
	if n == nil || n.url == "" {
		return
	}
	resp, err := n.client.R().SetContext(ctx).SetBody(ev).Post(n.url)
	if err != nil {
		n.logger.Warn("webhook推送失败", zap.String("event", ev.Event), zap.Error(err))
		return
	}
	if resp.IsError() {
		n.logger.Warn("webhook推送被拒绝",
			zap.String("event", ev.Event),
			zap.Int("status", resp.StatusCode()))
	}
}
