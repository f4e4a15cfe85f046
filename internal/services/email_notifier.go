package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Player_Progression/internal/events"
	"github.com/Dias221467/Player_Progression/internal/models"
	"github.com/Dias221467/Player_Progression/internal/repository"
)

// Mailer sends a plain text email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// EmailNotifier emails players about friend requests sent to them and about
// their own requests being accepted.
type EmailNotifier struct {
	players *repository.PlayerRepository
	mailer  Mailer
}

func NewEmailNotifier(players *repository.PlayerRepository, mailer Mailer) *EmailNotifier {
	return &EmailNotifier{players: players, mailer: mailer}
}

func (n *EmailNotifier) Publish(ctx context.Context, e events.Event) error {
	req, ok := e.Data.(*models.FriendRequest)
	if !ok {
		return nil
	}

	switch e.Type {
	case events.FriendRequestCreated:
		receiver, err := n.players.GetPlayerByID(ctx, req.ReceiverID)
		if err != nil {
			return err
		}
		return n.mailer.SendEmail(receiver.Email, "New friend request",
			fmt.Sprintf("Hi %s,\n\n%s sent you a friend request.", receiver.Name, req.SenderName))

	case events.FriendRequestAccepted:
		sender, err := n.players.GetPlayerByID(ctx, req.SenderID)
		if err != nil {
			return err
		}
		receiver, err := n.players.GetPlayerByID(ctx, req.ReceiverID)
		if err != nil {
			return err
		}
		return n.mailer.SendEmail(sender.Email, "Friend request accepted",
			fmt.Sprintf("Hi %s,\n\n%s accepted your friend request.", sender.Name, receiver.Name))
	}
	return nil
}
