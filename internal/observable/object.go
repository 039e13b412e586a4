// Package observable lets an owning object announce upcoming mutations.
//
// An Object carries one shared will-change publisher plus one publisher per
// registered property. Owners register their properties explicitly at
// construction time, typically by building them with NewProperty:
//
//	type Settings struct {
//		observable.Object
//		Theme *observable.Property[string]
//	}
//
//	func NewSettings() *Settings {
//		s := &Settings{}
//		s.Theme = observable.MustProperty(&s.Object, "theme", "dark")
//		return s
//	}
//
// Setting a property notifies its own publisher and then the object's
// WillChange publisher, before the new value is stored.
package observable

import (
	"sort"

	"github.com/brianly1003/observe/internal/domain"
	"github.com/brianly1003/observe/internal/publisher"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/rs/zerolog/log"
)

// Object is embedded by owning types. The zero value is ready to use and
// must not be copied after first use.
type Object struct {
	once       sync.Once
	willChange *publisher.Publisher

	mu         sync.RWMutex
	properties map[string]*publisher.Publisher
}

// WillChange returns the object-wide publisher, creating it on first use.
func (o *Object) WillChange() *publisher.Publisher {
	o.once.Do(func() {
		o.willChange = publisher.New()
	})
	return o.willChange
}

// Register declares a property and gives it its own publisher.
func (o *Object) Register(id string) error {
	if id == "" {
		return domain.ErrEmptyPropertyID
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.properties == nil {
		o.properties = make(map[string]*publisher.Publisher)
	}
	if _, ok := o.properties[id]; ok {
		return domain.NewPropertyError(id, domain.ErrPropertyExists)
	}
	o.properties[id] = publisher.New()
	return nil
}

// PublisherFor returns the publisher registered for property id.
func (o *Object) PublisherFor(id string) (*publisher.Publisher, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.properties[id]
	if !ok {
		return nil, domain.NewPropertyError(id, domain.ErrPropertyNotRegistered)
	}
	return p, nil
}

// Properties returns the registered property ids in sorted order.
func (o *Object) Properties() []string {
	o.mu.RLock()
	ids := make([]string, 0, len(o.properties))
	for id := range o.properties {
		ids = append(ids, id)
	}
	o.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// SubscriberCount returns the number of subscriptions across the object
// publisher and all property publishers.
func (o *Object) SubscriberCount() int {
	n := o.WillChange().SubscriberCount()

	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, p := range o.properties {
		n += p.SubscriberCount()
	}
	return n
}

// NotifyWillChange announces that property id is about to change. An empty
// id notifies only the object-wide publisher.
func (o *Object) NotifyWillChange(id string) {
	if id != "" {
		o.mu.RLock()
		p := o.properties[id]
		o.mu.RUnlock()

		if p != nil {
			p.Send()
		}
	}

	o.WillChange().Send()
	log.Trace().Str("property", id).Msg("object will change")
}
