package models

// DefaultLetter is shown in the letter phase when the creator left the
// final letter empty.
const DefaultLetter = `My dearest,

As you've journeyed through these memories, I hope each one reminded you of the special moments we share. Every photograph, every word, every emotion captured here is a reflection of my feelings for you.

But this is just the beginning. This private universe we've created together is a space where we can grow, dream, and cherish each other. In the pages that follow, you'll discover tools to track our journey together, write our story, and hold onto the dreams we share.

Thank you for being you. Thank you for making every day brighter.

Happy Birthday to the most wonderful person in my life. 🎂✨

Forever yours,
💕`
