package store

import (
	"sort"

	"field-match/internal/domain/notification"

	"github.com/google/uuid"
)

func cloneNotification(n notification.Notification) notification.Notification {
	if n.RelatedEntityID != nil {
		v := *n.RelatedEntityID
		n.RelatedEntityID = &v
	}
	return n
}

// PutNotification inserts n and assigns its insertion sequence number.
// The assignment happens under the recipient's shard lock, so a concurrent
// MarkAllRead for the same recipient observes the notification either fully
// present or not at all.
func (s *Store) PutNotification(n notification.Notification) (notification.Notification, bool) {
	sh := s.noteShardFor(n.RecipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	byID := sh.byRecipient[n.RecipientID]
	if byID == nil {
		byID = make(map[uuid.UUID]notification.Notification)
		sh.byRecipient[n.RecipientID] = byID
	}
	if _, ok := byID[n.ID]; ok {
		return notification.Notification{}, false
	}

	n.Seq = s.NextSeq()
	byID[n.ID] = cloneNotification(n)

	s.noteIndexMu.Lock()
	s.noteIndex[n.ID] = n.RecipientID
	s.noteIndexMu.Unlock()

	return cloneNotification(n), true
}

func (s *Store) notificationRecipient(id uuid.UUID) (uuid.UUID, bool) {
	s.noteIndexMu.RLock()
	defer s.noteIndexMu.RUnlock()
	r, ok := s.noteIndex[id]
	return r, ok
}

func (s *Store) GetNotification(id uuid.UUID) (notification.Notification, bool) {
	recipientID, ok := s.notificationRecipient(id)
	if !ok {
		return notification.Notification{}, false
	}

	sh := s.noteShardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	n, ok := sh.byRecipient[recipientID][id]
	if !ok {
		return notification.Notification{}, false
	}
	return cloneNotification(n), true
}

// UpdateNotification applies fn under the recipient's shard write lock.
func (s *Store) UpdateNotification(id uuid.UUID, fn func(n *notification.Notification) error) (notification.Notification, bool, error) {
	recipientID, ok := s.notificationRecipient(id)
	if !ok {
		return notification.Notification{}, false, nil
	}

	sh := s.noteShardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	byID := sh.byRecipient[recipientID]
	cur, ok := byID[id]
	if !ok {
		return notification.Notification{}, false, nil
	}

	next := cloneNotification(cur)
	if err := fn(&next); err != nil {
		return cloneNotification(cur), true, err
	}
	byID[id] = next
	return cloneNotification(next), true, nil
}

func (s *Store) DeleteNotification(id uuid.UUID) (notification.Notification, bool) {
	recipientID, ok := s.notificationRecipient(id)
	if !ok {
		return notification.Notification{}, false
	}

	sh := s.noteShardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	byID := sh.byRecipient[recipientID]
	n, ok := byID[id]
	if !ok {
		return notification.Notification{}, false
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(sh.byRecipient, recipientID)
	}

	s.noteIndexMu.Lock()
	delete(s.noteIndex, id)
	s.noteIndexMu.Unlock()

	return cloneNotification(n), true
}

// NotificationsFor returns the recipient's notifications in canonical order:
// (CreatedAt, Seq) ascending.
func (s *Store) NotificationsFor(recipientID uuid.UUID) []notification.Notification {
	sh := s.noteShardFor(recipientID)
	sh.mu.RLock()
	byID := sh.byRecipient[recipientID]
	out := make([]notification.Notification, 0, len(byID))
	for _, n := range byID {
		out = append(out, cloneNotification(n))
	}
	sh.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// MarkAllNotificationsRead flips every unread notification of the recipient
// in one critical section and returns how many changed.
func (s *Store) MarkAllNotificationsRead(recipientID uuid.UUID) int {
	sh := s.noteShardFor(recipientID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	changed := 0
	for id, n := range sh.byRecipient[recipientID] {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		sh.byRecipient[recipientID][id] = n
		changed++
	}
	return changed
}

// UnreadCountFor counts the recipient's unread notifications under the shard
// read lock, so it never observes a half-applied write.
func (s *Store) UnreadCountFor(recipientID uuid.UUID) int {
	sh := s.noteShardFor(recipientID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	count := 0
	for _, n := range sh.byRecipient[recipientID] {
		if !n.IsRead {
			count++
		}
	}
	return count
}
