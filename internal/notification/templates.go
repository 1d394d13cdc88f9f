package notification

import (
	"fmt"

	"bitefeed-notify/internal/model"
)

// defaultMessage derives the templated message for an event type from the
// actor's display name. The second return is false for types with no
// default; callers must supply a message for those.
func defaultMessage(t model.EventType, actorName string) (string, bool) {
	switch t {
	case model.EventLike:
		return fmt.Sprintf("%s liked your post", actorName), true
	case model.EventComment:
		return fmt.Sprintf("%s commented on your post", actorName), true
	case model.EventFollow:
		return fmt.Sprintf("%s started following you", actorName), true
	case model.EventNewPost:
		return fmt.Sprintf("%s shared a new post", actorName), true
	case model.EventMessage:
		return fmt.Sprintf("%s sent you a message", actorName), true
	case model.EventCompliment:
		return fmt.Sprintf("%s sent you a compliment", actorName), true
	case model.EventStoryLike:
		return fmt.Sprintf("%s liked your story", actorName), true
	case model.EventWalletReward:
		return "You received a wallet reward", true
	case model.EventNewOrder:
		return fmt.Sprintf("%s placed a new order", actorName), true
	case model.EventOrderPreparing:
		return "Your order is being prepared", true
	case model.EventOrderInProgress:
		return "Your order is on its way", true
	case model.EventOrderCompleted:
		return "Your order has been delivered", true
	}
	return "", false
}

// pushTitle picks the provider notification title for an event type.
func pushTitle(t model.EventType) string {
	switch t {
	case model.EventMessage:
		return "New message"
	case model.EventNewOrder, model.EventOrderPreparing, model.EventOrderInProgress, model.EventOrderCompleted:
		return "Order update"
	case model.EventWalletReward:
		return "Wallet credit"
	default:
		return "BiteFeed"
	}
}
