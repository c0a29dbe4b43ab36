package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

// SNS の Publish だけを使う
type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier は注文ステータスの変化を SNS トピックへ送る。
type SNSNotifier struct {
	client   snsAPI
	topicARN string
	lg       *zap.Logger
}

func NewSNSNotifier(client snsAPI, topicARN string, lg *zap.Logger) *SNSNotifier {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &SNSNotifier{client: client, topicARN: topicARN, lg: lg}
}

// NewSNSNotifierFromEnv は既定の AWS 設定（環境変数・共有設定）でクライアントを作る。
func NewSNSNotifierFromEnv(ctx context.Context, topicARN string, lg *zap.Logger) (*SNSNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return NewSNSNotifier(sns.NewFromConfig(cfg), topicARN, lg), nil
}

func (n *SNSNotifier) Notify(ctx context.Context, e usecase.OrderEvent) error {
	if n.topicARN == "" {
		return errors.New("empty topic arn")
	}
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String("order.status_changed")},
			"to_status":  {DataType: aws.String("Number"), StringValue: aws.String(strconv.Itoa(int(e.ToStatus)))},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "sns publish to %s", n.topicARN)
	}
	n.lg.Debug("order event published",
		zap.Int64("order_id", e.OrderID),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

// Noop は通知先が未設定のとき
type Noop struct{}

func (Noop) Notify(context.Context, usecase.OrderEvent) error { return nil }
