package app

import "agadeepaoli/internal/domain/models"

// DefaultPoems is the starter collection written into an empty store.
func DefaultPoems(author string) []models.Poem {
	return []models.Poem{
		{
			Title:  "காலை வணக்கம்",
			Body:   "விடியலின் ஒளியில்\nபூக்கள் சிரிக்கின்றன\nகாற்றில் நறுமணம்\nமனதில் மகிழ்ச்சி",
			Author: author,
			Date:   "2026-02-20",
			Type:   models.PoemTypeKavithai,
		},
		{
			Title:  "அன்பின் மொழி",
			Body:   "அன்பு ஒரு மொழி\nஅது இதயத்தின் பேச்சு\nவார்த்தைகள் இல்லாமல்\nஉணர்வுகள் பேசும்",
			Author: author,
			Date:   "2026-02-19",
			Type:   models.PoemTypeKavithai,
		},
		{
			Title:  "இயற்கையின் அழகு",
			Body:   "மலைகளின் உயரம்\nஆறுகளின் ஓட்டம்\nவானவில்லின் வண்ணம்\nஇயற்கையின் கொடை",
			Author: author,
			Date:   "2026-02-18",
			Type:   models.PoemTypeKavithai,
		},
		{
			Title:  "அன்பின் வலிமை",
			Body:   "அன்பு என்பது உலகின் மிகப் பெரிய சக்தி. அது மனிதர்களை இணைக்கிறது, குணப்படுத்துகிறது, மற்றும் மாற்றுகிறது. அன்பு இல்லாத வாழ்க்கை பூக்கள் இல்லாத தோட்டம் போன்றது.",
			Author: author,
			Date:   "2026-02-16",
			Type:   models.PoemTypeKaturai,
		},
	}
}
