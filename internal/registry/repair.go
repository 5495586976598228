package registry

import "github.com/mcncl/jsonexport/internal/models"

// Repair points every class-typed property that references oldName at
// newName and marks the classes it touched stale. It returns those classes
// in display order.
func Repair(r *Registry, oldName, newName string) []*models.ClassSchema {
	touched := r.Dependents(oldName)
	for _, c := range touched {
		for i := range c.Properties {
			p := &c.Properties[i]
			if p.IsClassTyped() && p.ClassRef == oldName {
				p.ClassRef = newName
			}
		}
		c.Invalidate()
	}
	return touched
}
