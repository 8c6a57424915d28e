package model

// Clone returns a deep copy safe to hand out of a store.
func (p Post) Clone() Post {
	out := p
	out.Images = append([]string(nil), p.Images...)
	out.LikedBy = append([]Actor(nil), p.LikedBy...)
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		out.Comments[i] = c.Clone()
	}
	return out
}

func (c Comment) Clone() Comment {
	out := c
	out.LikedBy = append([]Actor(nil), c.LikedBy...)
	return out
}

func (s UserStories) Clone() UserStories {
	out := s
	out.Items = append([]StoryItem(nil), s.Items...)
	return out
}

// HasActor reports whether id is present in actors.
func HasActor(actors []Actor, id string) bool {
	for _, a := range actors {
		if a.ID == id {
			return true
		}
	}
	return false
}
