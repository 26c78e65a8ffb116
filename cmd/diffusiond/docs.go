package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           diffusiond API
// @version         1.0
// @description     HTTP API for local Stable Diffusion model management and image generation.
//
// @contact.name   diffusiond maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
