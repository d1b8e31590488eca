// Package middleware groups the fiber middleware mounted by the start command.
//
//   - rayid: tags each request with an X-Ray-ID, reusing the caller's when sent.
//   - auth: requires the X-API-Key header (or api_key query) once SERVER_API_KEY is set.
//
// Swagger is mounted between the two and stays public.
package middleware
