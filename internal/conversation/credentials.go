package conversation

import (
	"strings"

	"order-card-bot/internal/entity"
)

const credentialFieldRule = "required,alphanum"

func (s *Service) startCredentials(t *turn, greet bool) error {
	s.leaveFlow(t)
	t.sess.enter(ModeCredentials, StageAwaitingKey)

	if greet {
		if err := t.say(msgWelcome); err != nil {
			return err
		}
	}
	return t.say(msgAskKey)
}

// credentialStep collects key, token and board in turn. Nothing is stored until all three are valid.
func (s *Service) credentialStep(t *turn, text string) error {
	value := strings.TrimSpace(text)
	if err := s.validate.Var(value, credentialFieldRule); err != nil {
		return t.say(msgInvalidCredField)
	}

	switch t.sess.Stage {
	case StageAwaitingKey:
		t.sess.PendingCredentials.APIKey = value
		t.sess.Stage = StageAwaitingToken
		return t.say(msgAskToken)

	case StageAwaitingToken:
		t.sess.PendingCredentials.Token = value
		t.sess.Stage = StageAwaitingBoard
		return t.say(msgAskBoard)

	case StageAwaitingBoard:
		creds := &entity.Credentials{
			APIKey:  t.sess.PendingCredentials.APIKey,
			Token:   t.sess.PendingCredentials.Token,
			BoardID: value,
		}
		if err := s.validate.Struct(creds); err != nil {
			t.sess.Reset()
			return t.say(msgInvalidCredField)
		}
		if err := s.credentials.Save(t.ctx, t.sess.OperatorID, creds); err != nil {
			return s.storageFailed(t, err)
		}

		s.logger.Info(module, "Credentials configured", map[string]interface{}{
			"operator_id": t.sess.OperatorID,
			"board_id":    creds.BoardID,
		})
		s.leaveFlow(t)
		return t.say(msgCredentialsSaved)

	default:
		s.leaveFlow(t)
		return t.say(msgHelp)
	}
}
